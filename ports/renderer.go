package ports

import "molcure/domain/report"

// MoleculeRenderer draws a labeled grid of molecules for inclusion in a
// report section.
type MoleculeRenderer interface {
	RenderGrid(smiles []string, legends []string, title string) (report.AnnotatedImage, error)
}
