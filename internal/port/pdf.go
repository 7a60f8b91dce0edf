package port

import "context"

// PDFRenderer turns an HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
	Close() error
}
