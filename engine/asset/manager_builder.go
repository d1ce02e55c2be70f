package asset

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"

	"go.uber.org/zap"
)

// ManagerBuilderOption is a functional option for configuring a Manager via NewManager.
type ManagerBuilderOption func(*manager)

// WithDecoder sets the decoder LoadAsset reads files with.
//
// Parameters:
//   - d: the decoder
//
// Returns:
//   - ManagerBuilderOption: a function that applies the decoder to a manager
func WithDecoder(d Decoder) ManagerBuilderOption {
	return func(m *manager) {
		m.decoder = d
	}
}

// WithMaterializer sets the materializer used for device uploads.
//
// Parameters:
//   - mat: the materializer
//
// Returns:
//   - ManagerBuilderOption: a function that applies the materializer to a manager
func WithMaterializer(mat Materializer) ManagerBuilderOption {
	return func(m *manager) {
		m.materializer = mat
	}
}

// WithDevice creates the manager's materializer on the given device.
// The materializer shares the manager logger only when WithLogger comes first.
//
// Parameters:
//   - device: the device
//
// Returns:
//   - ManagerBuilderOption: a function that applies the device to a manager
func WithDevice(device gpu.Device) ManagerBuilderOption {
	return func(m *manager) {
		m.materializer = NewMaterializer(device, WithMaterializerLogger(m.log))
	}
}

// WithLogger sets the manager's logger.
//
// Parameters:
//   - log: the logger, nil for none
//
// Returns:
//   - ManagerBuilderOption: a function that applies the logger to a manager
func WithLogger(log *zap.Logger) ManagerBuilderOption {
	return func(m *manager) {
		if log != nil {
			m.log = log
		}
	}
}

// LoadOption configures a single load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	reload  bool
	loadAll bool
}

func defaultLoadOptions() loadOptions {
	return loadOptions{loadAll: true}
}

// WithReload replaces an asset already registered under the same path instead of returning it.
//
// Parameters:
//   - reload: true to replace
//
// Returns:
//   - LoadOption: a function that applies the setting
func WithReload(reload bool) LoadOption {
	return func(o *loadOptions) {
		o.reload = reload
	}
}

// WithLoadAll controls whether texture images are decoded and resolved.
// Without them every material falls back to the default textures.
//
// Parameters:
//   - all: true to load textures
//
// Returns:
//   - LoadOption: a function that applies the setting
func WithLoadAll(all bool) LoadOption {
	return func(o *loadOptions) {
		o.loadAll = all
	}
}

func newDefaultDevice() gpu.Device {
	return gpu.NewMemoryDevice()
}
