package thf

import (
	kitlog "github.com/go-kit/log"
)

// Store owns the segment configurations of a thrust history file, in insertion order.
// Order matters: when segments overlap, the first registered one is used.
// The store is written while loading and only read by the Engine afterwards.
type Store struct {
	configs     []*SegmentConfig
	byName      map[string]int
	pending     map[string]*SegmentConfig // configured before their data was loaded
	activeNames map[string]bool           // nil means every segment is active
	warnOverlap bool
	logger      kitlog.Logger
}

// NewStore returns an empty store.
func NewStore(logger kitlog.Logger) *Store {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Store{
		byName:      make(map[string]int),
		pending:     make(map[string]*SegmentConfig),
		warnOverlap: true,
		logger:      kitlog.With(logger, "subsys", "store"),
	}
}

// Ingest merges the segment into the configuration of the same name, or appends a
// new configuration. Merging replaces the segment data only: scale factors and mass
// sources are kept.
func (s *Store) Ingest(seg Segment) *SegmentConfig {
	if idx, exists := s.byName[seg.Name]; exists {
		cfg := s.configs[idx]
		cfg.Data = seg
		cfg.hasData = true
		return cfg
	}
	if s.warnOverlap {
		for _, other := range s.configs {
			if overlaps(&seg, &other.Data) {
				s.logger.Log("level", "warning", "segment", seg.Name, "overlaps", other.Name, "message", "segments overlap, the first registered one is used")
			}
		}
	}
	cfg, isPending := s.pending[seg.Name]
	if isPending {
		delete(s.pending, seg.Name)
	} else {
		cfg = NewSegmentConfig(seg.Name)
	}
	cfg.Data = seg
	cfg.hasData = true
	cfg.active = s.isActive(seg.Name)
	s.byName[seg.Name] = len(s.configs)
	s.configs = append(s.configs, cfg)
	return cfg
}

// overlaps returns whether the spans of two segments intersect (touching ends do not overlap).
func overlaps(a, b *Segment) bool {
	return a.StartEpoch < b.EndEpoch && b.StartEpoch < a.EndEpoch
}

// Get returns the configuration of the named segment, including pending ones.
func (s *Store) Get(name string) (*SegmentConfig, bool) {
	if idx, exists := s.byName[name]; exists {
		return s.configs[idx], true
	}
	cfg, exists := s.pending[name]
	return cfg, exists
}

// Configs returns the loaded configurations in store order. Do not modify the slice.
func (s *Store) Configs() []*SegmentConfig {
	return s.configs
}

// Len returns the number of loaded segments.
func (s *Store) Len() int {
	return len(s.configs)
}

// Configure sets the scale factors and mass sources of a segment. If the segment is
// not loaded yet, the configuration is kept until it is ingested.
func (s *Store) Configure(name string, thrustScale, massFlowScale float64, couple bool, massSources []string) error {
	cfg, exists := s.Get(name)
	if !exists {
		cfg = NewSegmentConfig(name)
	}
	if err := cfg.SetScaleFactors(thrustScale, massFlowScale, couple); err != nil {
		return err
	}
	cfg.SetMassSources(massSources...)
	if !exists {
		s.pending[name] = cfg
	}
	return nil
}

// Activate restricts queries to the named segments. Without names, every segment is active.
func (s *Store) Activate(names ...string) {
	if len(names) == 0 {
		s.activeNames = nil
	} else {
		s.activeNames = make(map[string]bool, len(names))
		for _, name := range names {
			s.activeNames[name] = true
		}
	}
	for _, cfg := range s.configs {
		cfg.active = s.isActive(cfg.Name)
	}
	for _, name := range names {
		if _, exists := s.byName[name]; !exists {
			s.logger.Log("level", "warning", "segment", name, "message", "activated segment is not loaded")
		}
	}
}

func (s *Store) isActive(name string) bool {
	return s.activeNames == nil || s.activeNames[name]
}

// Span returns the earliest start and latest end epochs of the loaded segments.
func (s *Store) Span() (start, end float64, ok bool) {
	for i, cfg := range s.configs {
		if i == 0 || cfg.Data.StartEpoch < start {
			start = cfg.Data.StartEpoch
		}
		if i == 0 || cfg.Data.EndEpoch > end {
			end = cfg.Data.EndEpoch
		}
	}
	return start, end, len(s.configs) > 0
}

// ResolveFrames resolves the frame handle of every loaded segment.
func (s *Store) ResolveFrames(frames FrameProvider) error {
	for _, cfg := range s.configs {
		h, err := frames.ResolveFrame(cfg.Data.FrameName)
		if err != nil {
			return newError(ErrUnknownFrame, cfg.Name, 0, "%s", cfg.Data.FrameName)
		}
		cfg.Data.Frame = h
	}
	return nil
}
