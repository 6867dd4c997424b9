// Package console is the command-window interpreter: it turns text lines
// such as "sphere 2 on Global_XY_Plane as Ball" into document operations.
//
// The catalog of creatable primitives lives here too, so the shell, the
// script runner and the mesh command agree on names, arguments and colors.
package console
