// Package clipboard puts rendered merge reports on the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier copies a rendered report to the system clipboard.
type Copier interface {
	Copy(reportText string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs the clipboard-backed Copier used by the merge command.
func NewService() *Service {
	return &Service{}
}

// Copy writes the report text to the system clipboard.
func (service *Service) Copy(reportText string) error {
	return clipboard.WriteAll(reportText)
}

var _ Copier = (*Service)(nil)
