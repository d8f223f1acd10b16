package engine

// Option configures the Engine at creation time.
type Option func(*engineConfig)

type engineConfig struct {
	diskCache        bool
	cacheDir         string
	memoryLimitPages uint32 // each page is 64KB, 0 = wazero default (4GB)
}

func defaultEngineConfig() engineConfig {
	return engineConfig{}
}

// WithDiskCache enables a persistent compilation cache for faster CLI
// startup. Optionally provide a custom directory; otherwise uses
// ~/.cache/monojs or XDG_CACHE_HOME/monojs.
func WithDiskCache(dir ...string) Option {
	return func(c *engineConfig) {
		c.diskCache = true
		if len(dir) > 0 && dir[0] != "" {
			c.cacheDir = dir[0]
		}
	}
}

// WithMemoryLimit sets the maximum memory available to the interpreter,
// in 64KB pages.
func WithMemoryLimit(pages uint32) Option {
	return func(c *engineConfig) {
		c.memoryLimitPages = pages
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit16MB  uint32 = 256   // 16 MB
	MemoryLimit64MB  uint32 = 1024  // 64 MB
	MemoryLimit256MB uint32 = 4096  // 256 MB
	MemoryLimit1GB   uint32 = 16384 // 1 GB
)
