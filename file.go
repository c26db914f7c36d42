package thf

import (
	"fmt"
	"os"
	"path/filepath"

	kitlog "github.com/go-kit/log"
)

// ThrustHistoryFile loads thrust history files into a segment store and serves
// thrust queries from them.
type ThrustHistoryFile struct {
	name     string
	conf     Config
	tc       TimeConverter
	frames   FrameProvider
	store    *Store
	engine   *Engine
	observer Observer
	logger   kitlog.Logger
}

// NewThrustHistoryFile returns an empty thrust history file. A nil time converter, frame
// provider or logger is replaced by its default.
func NewThrustHistoryFile(name string, conf Config, tc TimeConverter, frames FrameProvider, logger kitlog.Logger) *ThrustHistoryFile {
	if tc == nil {
		tc = NewTimeSystemConverter()
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "thf", name)
	if frames == nil {
		frames = NewFrames(tc, logger)
	}
	if conf.DefaultFrame == "" {
		conf.DefaultFrame = DefaultFrameName
	}
	if conf.WorkingFrame == "" {
		conf.WorkingFrame = DefaultFrameName
	}
	store := NewStore(logger)
	store.warnOverlap = conf.WarnOverlap
	return &ThrustHistoryFile{
		name:     name,
		conf:     conf,
		tc:       tc,
		frames:   frames,
		store:    store,
		engine:   NewEngine(store, frames, logger),
		observer: nopObserver{},
		logger:   kitlog.With(logger, "subsys", "thf"),
	}
}

// Name returns the name of this thrust history file.
func (f *ThrustHistoryFile) Name() string {
	return f.name
}

// Store returns the segment store.
func (f *ThrustHistoryFile) Store() *Store {
	return f.store
}

// Engine returns the query engine.
func (f *ThrustHistoryFile) Engine() *Engine {
	return f.engine
}

// SetObserver sets the observer of loads and queries.
func (f *ThrustHistoryFile) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	f.observer = o
	f.engine.SetObserver(o)
}

// locate returns the path of the file: the path itself, or else the path under the search path.
func (f *ThrustHistoryFile) locate(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if f.conf.SearchPath != "" {
		alt := filepath.Join(f.conf.SearchPath, path)
		if filepath.IsAbs(path) {
			alt = filepath.Join(f.conf.SearchPath, filepath.Base(path))
		}
		if _, err := os.Stat(alt); err == nil {
			return alt, nil
		}
	}
	return "", newError(ErrFileNotFound, "", 0, "%s (search path %q)", path, f.conf.SearchPath)
}

// LoadFile parses, validates and stores every segment of the file. Segments already
// loaded under the same name are replaced, keeping their configuration. On error, the
// store is left untouched.
func (f *ThrustHistoryFile) LoadFile(path string) error {
	located, err := f.locate(path)
	if err != nil {
		return err
	}
	fd, err := os.Open(located)
	if err != nil {
		return newError(ErrFileNotFound, "", 0, "%s", err)
	}
	defer fd.Close()

	parser := NewParser(f.tc, f.logger)
	parser.DefaultFrame = f.conf.DefaultFrame
	segments, err := parser.Parse(fd)
	if err != nil {
		f.logger.Log("level", "critical", "file", located, "err", err)
		return err
	}
	working, err := f.frames.ResolveFrame(f.conf.WorkingFrame)
	if err != nil {
		return newError(ErrUnknownFrame, "", 0, "working frame %s", f.conf.WorkingFrame)
	}
	for i := range segments {
		h, err := f.frames.ResolveFrame(segments[i].FrameName)
		if err != nil {
			return newError(ErrUnknownFrame, segments[i].Name, 0, "%s", segments[i].FrameName)
		}
		segments[i].Frame = h
	}

	f.engine.SetWorkingFrame(working)
	for _, seg := range segments {
		f.store.Ingest(seg)
	}
	f.logger.Log("level", "notice", "file", located, "segments", len(segments), "stored", f.store.Len())
	f.observer.FileLoaded(f.name, located, len(segments))
	return nil
}

// SetFrames replaces the frame provider and resolves the frames of the loaded segments again.
func (f *ThrustHistoryFile) SetFrames(frames FrameProvider) error {
	working, err := frames.ResolveFrame(f.conf.WorkingFrame)
	if err != nil {
		return newError(ErrUnknownFrame, "", 0, "working frame %s", f.conf.WorkingFrame)
	}
	if err := f.store.ResolveFrames(frames); err != nil {
		return err
	}
	f.frames = frames
	f.engine.frames = frames
	f.engine.SetWorkingFrame(working)
	return nil
}

// Query returns the thrust data at the A.1 epoch.
func (f *ThrustHistoryFile) Query(epoch float64) Result {
	return f.engine.Query(epoch)
}

// ActiveTankName returns the mass source used by the last query with a mass flow.
func (f *ThrustHistoryFile) ActiveTankName() (string, bool) {
	return f.engine.ActiveTankName()
}

// SetSegmentConfig sets the scale factors and mass sources of a segment, which may be
// loaded later.
func (f *ThrustHistoryFile) SetSegmentConfig(name string, thrustScale, massFlowScale float64, couple bool, massSources []string) error {
	return f.store.Configure(name, thrustScale, massFlowScale, couple, massSources)
}

// SetActiveSegments restricts queries to the named segments. Without names, all segments are used.
func (f *ThrustHistoryFile) SetActiveSegments(names ...string) {
	f.store.Activate(names...)
}

// ResolveMassSources checks that every configured mass source exists.
func (f *ThrustHistoryFile) ResolveMassSources(lookup MassSourceLookup) error {
	check := func(cfg *SegmentConfig) error {
		for _, tank := range cfg.MassSourceNames {
			if !lookup.HasMassSource(tank) {
				return newError(ErrUnknownMassSource, cfg.Name, 0, "%s", tank)
			}
		}
		if len(cfg.MassSourceNames) > 1 {
			f.logger.Log("level", "notice", "segment", cfg.Name, "tanks", fmt.Sprintf("%v", cfg.MassSourceNames), "message", "only the first mass source is depleted")
		}
		return nil
	}
	for _, cfg := range f.store.Configs() {
		if err := check(cfg); err != nil {
			return err
		}
	}
	for _, cfg := range f.store.pending {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}
