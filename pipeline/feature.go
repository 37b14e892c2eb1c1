package pipeline

// Feature is an installable collaborator that registers handlers against
// pipeline lifecycle stages. Features are installed once, at agent
// construction time, and their registrations live for the agent's lifetime.
type Feature interface {
	// Key identifies the feature; it tags every registration it installs.
	Key() FeatureKey

	// Install appends the feature's registrations to the pipeline.
	Install(p *Pipeline) error
}
