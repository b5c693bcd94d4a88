package service

// Service holds all business logic services.
type Service struct {
	Pipeline *EnrichmentPipeline
}

// NewService creates a new Service reading its lookup tables from source.
func NewService(source TableSource) *Service {
	return &Service{
		Pipeline: NewEnrichmentPipeline(source),
	}
}
