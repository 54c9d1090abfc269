package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ResolveAssetPaths rewrites relative img[src] and link[href] references in a
// rendered receipt to file:// URLs under baseDir. A custom template can then
// ship images and stylesheets next to it even though the browser prints from
// a temporary copy of the page.
//
// References that escape baseDir, URLs, data URIs, anchors and absolute paths
// are left untouched. An empty baseDir returns the document unchanged.
func ResolveAssetPaths(document, baseDir string) (string, error) {
	if baseDir == "" {
		return document, nil
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", err
	}

	changed := false
	walk(root, func(n *html.Node) {
		var key string
		switch n.Data {
		case "img":
			key = "src"
		case "link":
			key = "href"
		default:
			return
		}
		for i, attr := range n.Attr {
			if attr.Key != key || !isLocalReference(attr.Val) {
				continue
			}
			abs := filepath.Join(absDir, filepath.FromSlash(attr.Val))
			if !within(abs, absDir) {
				continue
			}
			n.Attr[i].Val = fileURL(abs)
			changed = true
		}
	})
	if !changed {
		return document, nil
	}

	var buf strings.Builder
	if err := html.Render(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// walk calls fn for every element node under n.
func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// isLocalReference reports whether ref is a relative filesystem path.
func isLocalReference(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(ref) && !strings.HasPrefix(ref, "/")
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fileURL converts an absolute path to a file:// URL (Windows paths included).
func fileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
