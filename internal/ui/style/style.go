// Package style provides the colors and icons used by command output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/modcache/internal/core/domain"
)

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Teal   = lipgloss.Color("#0EA5E9")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Circle  = "○"
)

// KindColor returns the color a module kind is printed in.
func KindColor(k domain.ModuleKind) lipgloss.Color {
	switch k {
	case domain.ModuleLocal:
		return Slate
	case domain.ModuleRemote:
		return Teal
	case domain.ModulePackage:
		return Iris
	default:
		return Yellow
	}
}
