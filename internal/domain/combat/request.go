package combat

// ActionRequest is an immutable declaration of an attempted action. It is
// created per decision, consumed once by the pipeline, and never mutated.
type ActionRequest struct {
	ActorID  string `json:"actor_id"`
	ActionID string `json:"action_id"`

	// TargetIDs for entity-targeted actions
	TargetIDs []string `json:"target_ids,omitempty"`
	// Point for point-targeted actions
	Point *Position `json:"point,omitempty"`

	// VariantID selects a declared variant; empty picks the base effects,
	// or the first variant when the base effect list is empty
	VariantID string `json:"variant_id,omitempty"`

	// ResourceOverrides replaces declared pool costs (e.g. upcasting)
	ResourceOverrides map[string]int `json:"resource_overrides,omitempty"`
}
