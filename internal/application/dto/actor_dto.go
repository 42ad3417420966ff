package dto

// IssuePINResponse PIN en texto plano; solo se entrega una vez.
type IssuePINResponse struct {
	ActorID string `json:"actor_id"`
	PIN     string `json:"pin"`
}
