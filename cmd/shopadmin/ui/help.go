package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Shop Admin

## Navigation
| Key | Action |
|-----|--------|
| 1-4 | Dashboard / Orders / Products / Users |
| r   | Reload the current page |
| /   | Focus the search box |
| ?   | Toggle this help |
| ctrl+l | Sign out |
| ctrl+c | Quit |

## Orders
- **f** cycles the status filter, **enter** opens the order detail.
- In the detail view, **←/→** pick a status and **enter** applies it.

## Products
- **n** opens the create form, **enter** edits the selected product.
- Name and a non-negative price are required.

## Users
- **a** toggles the admin flag on the selected user.
- Revoking your own flag signs you out on your next action.
`

// renderHelp renders the help overlay through glamour, falling back to the
// raw markdown when the renderer cannot be built.
func renderHelp(styles Styles) string {
	style := "light"
	if styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
