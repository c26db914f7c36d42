package thf

// Observer is notified of file loads and query events. Implementations must be safe for
// concurrent use if queries are run concurrently.
type Observer interface {
	// FileLoaded is called after a successful load.
	FileLoaded(name, path string, segments int)
	// QueryServed is called for every query. The segment is empty if no segment covers the epoch.
	QueryServed(segment string, method InterpolationMethod)
	// SplineFallback is called once per segment when its spline falls back to linear.
	SplineFallback(segment string, points int)
	// MassSourceMissing is called once per engine when mass flow has no mass source.
	MassSourceMissing(segment string)
}

type nopObserver struct{}

func (nopObserver) FileLoaded(string, string, int) {}
func (nopObserver) QueryServed(string, InterpolationMethod) {}
func (nopObserver) SplineFallback(string, int) {}
func (nopObserver) MassSourceMissing(string) {}
