// Package ui contains the Fyne desktop window for a single download session.
// Widgets are driven by session snapshots: every button's enabled state is
// derived from the current phase, and updates are marshalled onto the UI
// thread.
package ui
