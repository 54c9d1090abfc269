// Package cfextrato renders Brazilian CFe-SAT receipts ("extrato") as HTML
// and PDF.
//
// # Quick Start
//
// Create a converter, convert a receipt, and close when done:
//
//	conv, err := cfextrato.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, cfextrato.Input{
//	    Source:         "cfe.xml",
//	    LogoPath:       "logo.png",
//	    AppQueryNotice: `Consulte o QR Code pelo aplicativo "De olho na nota"`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.View.DocumentID+".pdf", result.PDF, 0644)
//
// The result holds the PDF, the intermediate HTML, and the normalized
// ViewModel. Use Input.HTMLOnly to skip PDF generation.
//
// # Pipeline
//
//  1. Parse: XML into typed Document structs (LoadDocument, Parse)
//  2. Normalize: Document into a flat ViewModel with masked tax IDs,
//     postal code and serial, the emission instant and the QR payload
//  3. RenderHTML: the "extrato" template with QR code and barcode images
//  4. RenderPDF: headless Chrome (BackendRod) or gofpdf (BackendFPDF) on a
//     235 x 841.89 pt page
//  5. Download: optional delivery to a directory or an HTTP response
//
// Each stage is exported, so callers can stop early or feed their own data.
//
// # Configuration
//
//	conv, err := cfextrato.NewConverter(
//	    cfextrato.WithPDFBackend(cfextrato.BackendFPDF),
//	    cfextrato.WithStyle("/srv/loja.css"),
//	    cfextrato.WithAssetPath("/srv/assets"),
//	    cfextrato.WithDateLayout("iso"),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool; each Converter owns one browser:
//
//	pool := cfextrato.NewConverterPool(cfextrato.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Errors
//
// Failures match sentinel errors with errors.Is: ErrMalformedDocument,
// ErrUnsupportedDate, ErrTemplate, ErrConversion (with ErrBrowserConnect,
// ErrPageLoad...), ErrLogoRead, ErrDownload. No partial output is returned.
package cfextrato
