package gpu

// MemoryDeviceBuilderOption is a functional option for configuring a MemoryDevice via NewMemoryDevice.
type MemoryDeviceBuilderOption func(*MemoryDevice)

// WithBudget limits the number of bytes a MemoryDevice may hold at once.
// Allocations past the budget fail with ErrOutOfMemory.
//
// Parameters:
//   - bytes: the budget in bytes, 0 for unlimited
//
// Returns:
//   - MemoryDeviceBuilderOption: a function that applies the budget to a device
func WithBudget(bytes int) MemoryDeviceBuilderOption {
	return func(d *MemoryDevice) {
		d.budget = bytes
	}
}
