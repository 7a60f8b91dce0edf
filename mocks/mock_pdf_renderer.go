package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPDFRenderer is a mock implementation of port.PDFRenderer.
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}
