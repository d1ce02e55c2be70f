package window

// WindowBuilderOption configures a window before it opens.
type WindowBuilderOption func(w *glfwWindow)

// WithTitle sets the title bar text. The viewer shows the asset path in it.
//
// Parameters:
//   - title: the title text
//
// Returns:
//   - WindowBuilderOption: the option
func WithTitle(title string) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.title = title
	}
}

// WithSize requests the initial size in window units. Size limits widen to include it.
//
// Parameters:
//   - width: requested width
//   - height: requested height
//
// Returns:
//   - WindowBuilderOption: the option
func WithSize(width, height int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.width, w.height = width, height
	}
}

// WithSizeLimits bounds interactive resizing.
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *glfwWindow) {
		w.minWidth, w.minHeight = minWidth, minHeight
		w.maxWidth, w.maxHeight = maxWidth, maxHeight
	}
}
