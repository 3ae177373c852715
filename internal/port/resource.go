package port

// ResourceManager lets the batch scheduler request proactive reclamation of
// transient memory between documents. Injected explicitly; no ambient global
// toggles.
type ResourceManager interface {
	Reclaim()
}
