// Package scene is the transactional document at the centre of LeapCAD.
//
// A Document owns the object registry, the plane definitions, the active
// working plane and the coordinate system manager. Every mutation of the
// registry or of the active plane is a Command applied through the
// document's linear undo/redo history:
//
//	history: [c0 c1 c2 c3]
//	                  ^ cursor (last applied)
//
// Applying a command after an undo discards the redo branch. A command
// that fails leaves the document exactly as it was and is not recorded.
//
// Visuals are owned by a Presenter. The document hands mesh data to
// Presenter.Build once per object and only ever passes the returned
// VisualRef back to the presenter, so redo reuses the same visual.
package scene
