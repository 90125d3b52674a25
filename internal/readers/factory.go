package readers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/confaudit/confaudit/pkg/errors"
	"github.com/confaudit/confaudit/pkg/interfaces"
	"github.com/confaudit/confaudit/pkg/models"
)

// Factory creates source readers by kind
type Factory struct {
	creators map[models.SourceKind]interfaces.SourceReader
	mu       sync.RWMutex
	logger   *logrus.Logger
}

// NewFactory creates a reader factory with the built-in readers registered
func NewFactory(logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}

	factory := &Factory{
		creators: make(map[models.SourceKind]interfaces.SourceReader),
		logger:   logger,
	}

	factory.registerDefaults()

	return factory
}

func (f *Factory) registerDefaults() {
	f.creators[models.SourceKindTabular] = NewTabularReader(f.logger)
	f.creators[models.SourceKindDocument] = NewDocumentReader(f.logger)
	f.creators[models.SourceKindStructuredText] = NewStructuredReader(f.logger)
}

// CreateReader returns the reader for a source kind, or an
// UnsupportedFormatError for kinds no reader handles.
func (f *Factory) CreateReader(sourceID string, kind models.SourceKind) (interfaces.SourceReader, error) {
	f.mu.RLock()
	reader, exists := f.creators[kind]
	f.mu.RUnlock()

	if !exists {
		return nil, errors.NewUnsupportedFormatError(sourceID, string(kind))
	}

	return reader, nil
}

// RegisterReader registers a reader for a source kind, replacing any
// built-in registration for that kind.
func (f *Factory) RegisterReader(kind models.SourceKind, reader interfaces.SourceReader) error {
	if reader == nil {
		return errors.NewInternalError("reader cannot be nil", nil)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[kind] = reader
	f.logger.WithField("kind", kind).Info("Reader registered")

	return nil
}

// GetSupportedKinds returns all registered source kinds
func (f *Factory) GetSupportedKinds() []models.SourceKind {
	f.mu.RLock()
	defer f.mu.RUnlock()

	kinds := make([]models.SourceKind, 0, len(f.creators))
	for kind := range f.creators {
		kinds = append(kinds, kind)
	}

	return kinds
}

// Read normalizes one raw source with the reader registered for its kind.
func (f *Factory) Read(source models.RawSource) ([]*models.RecordSet, error) {
	reader, err := f.CreateReader(source.SourceID, source.Kind)
	if err != nil {
		return nil, err
	}

	recordSets, err := reader.Read(source)
	if err != nil {
		return nil, err
	}

	f.logger.WithFields(logrus.Fields{
		"source_id":   source.SourceID,
		"kind":        source.Kind,
		"record_sets": len(recordSets),
	}).Debug("Source normalized")

	return recordSets, nil
}
