// Package pipeline holds the HTML post-processing steps of the receipt renderer:
//   - inline Markdown for free-text fields (notice, taxpayer remarks) via Goldmark
//   - CSS injection into the rendered document
//   - resolution of relative asset references in custom templates
//
// Template execution and PDF generation live in the root cfextrato package.
package pipeline
