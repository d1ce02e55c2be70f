package common

// Virtual key codes the viewer reacts to.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII): pause or resume playback
	KeyMinus = 45  // Minus key (ASCII): zoom out
	KeyEqual = 61  // Equal key (ASCII): zoom in
	KeyA     = 65  // A key (ASCII): orbit left
	KeyD     = 68  // D key (ASCII): orbit right
	KeyK     = 75  // K key (ASCII): toggle skeleton lines
	KeyN     = 78  // N key (ASCII): next animation
	KeyP     = 80  // P key (ASCII): previous animation
	KeyR     = 82  // R key (ASCII): rewind to time 0
	KeyS     = 83  // S key (ASCII): orbit down
	KeyW     = 87  // W key (ASCII): orbit up
	KeyEsc   = 256 // Escape key (GLFW)
	KeyRight = 262 // Right arrow (GLFW): next scene
	KeyLeft  = 263 // Left arrow (GLFW): previous scene
)
