// Package platform defines the common Backend contract every per-OS driver
// implements (spec §4.1), plus the canonical role table backends map their
// native roles onto. Concrete drivers live in windowsbackend, darwinbackend
// and linuxbackend, selected at build time via GOOS build tags (grounded on
// the teacher's common/metrics/system.go runtime.GOOS pattern); any other
// GOOS gets the unsupported backend in unsupported.go. stubbackend is the
// in-memory fake used by tests.
package platform

import (
	"strings"

	"github.com/terminator-run/terminator/internal/element"
)

// roleAliases maps case-insensitive native role strings, across all three
// platforms, onto the canonical Role set (spec §3). Backends should consult
// this before falling back to NativeRole passthrough.
var roleAliases = map[string]element.Role{
	// MSAA/UIA
	"button":            element.RoleButton,
	"edit":               element.RoleEdit,
	"window":             element.RoleWindow,
	"pane":               element.RolePane,
	"menu":               element.RoleMenu,
	"menuitem":           element.RoleMenuItem,
	"list":               element.RoleList,
	"listitem":           element.RoleListItem,
	"tree":               element.RoleTree,
	"treeitem":           element.RoleTreeItem,
	"table":              element.RoleTable,
	"datagrid":           element.RoleTable,
	"cell":               element.RoleCell,
	"dataitem":           element.RoleCell,
	"dialog":             element.RoleDialog,
	"text":               element.RoleText,
	"statictext":         element.RoleText,
	"radiobutton":        element.RoleRadioButton,
	"checkbox":           element.RoleCheckBox,
	"combobox":           element.RoleComboBox,
	"tabitem":            element.RoleTabItem,
	"tab":                element.RoleTab,
	"tabcontrol":         element.RoleTab,
	"slider":             element.RoleSlider,
	"progressbar":        element.RoleProgressBar,
	"hyperlink":          element.RoleHyperlink,
	"link":               element.RoleHyperlink,
	"image":              element.RoleImage,
	"group":              element.RoleGroup,
	"scrollbar":          element.RoleScrollBar,
	"toolbar":            element.RoleToolBar,
	"statusbar":          element.RoleStatusBar,
	"document":           element.RoleDocument,

	// NSAccessibility (macOS)
	"axbutton":           element.RoleButton,
	"axtextfield":        element.RoleEdit,
	"axtextarea":         element.RoleEdit,
	"axwindow":           element.RoleWindow,
	"axgroup":            element.RolePane,
	"axmenu":             element.RoleMenu,
	"axmenuitem":         element.RoleMenuItem,
	"axlist":             element.RoleList,
	"axrow":              element.RoleListItem,
	"axoutline":          element.RoleTree,
	"axtable":            element.RoleTable,
	"axcell":             element.RoleCell,
	"axsheet":            element.RoleDialog,
	"axstatictext":       element.RoleText,
	"axradiobutton":      element.RoleRadioButton,
	"axcheckbox":         element.RoleCheckBox,
	"axpopupbutton":      element.RoleComboBox,
	"axtabgroup":         element.RoleTab,
	"axslider":           element.RoleSlider,
	"axprogressindicator": element.RoleProgressBar,
	"axlink":             element.RoleHyperlink,
	"aximage":            element.RoleImage,
	"axscrollbar":        element.RoleScrollBar,
	"axtoolbar":          element.RoleToolBar,

	// AT-SPI (Linux)
	"push button":        element.RoleButton,
	"entry":               element.RoleEdit,
	"frame":               element.RoleWindow,
	"panel":               element.RolePane,
	"menu bar":            element.RoleMenu,
	"menu item":           element.RoleMenuItem,
	"list box":            element.RoleList,
	"list item":           element.RoleListItem,
	"tree table":          element.RoleTree,
	"table cell":          element.RoleCell,
	"radio button":        element.RoleRadioButton,
	"check box":           element.RoleCheckBox,
	"combo box":           element.RoleComboBox,
	"page tab":            element.RoleTabItem,
	"page tab list":       element.RoleTab,
	"progress bar":        element.RoleProgressBar,
	"scroll bar":          element.RoleScrollBar,
	"tool bar":            element.RoleToolBar,
	"status bar":          element.RoleStatusBar,
	"document frame":      element.RoleDocument,
}

// CanonicalRole maps a backend-native role string onto the canonical Role
// set, falling back to an empty Role (caller should retain NativeRole) when
// nothing matches.
func CanonicalRole(native string) element.Role {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(native))]; ok {
		return r
	}
	return ""
}
