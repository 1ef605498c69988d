package routing

// =============================================================================
// Entrypoints
// =============================================================================

// VisibilityClass scopes an entrypoint to a class of clients.
type VisibilityClass string

const (
	ClassPublic    VisibilityClass = "public"    // forwarded from the internet gateway
	ClassPrivate   VisibilityClass = "private"   // reachable on the LAN only
	ClassDashboard VisibilityClass = "dashboard" // single-purpose dashboard port
)

// Entrypoint is a named network listener on the reverse proxy.
type Entrypoint struct {
	Name    string
	Address string // listener address, e.g. ":443"
	TLS     bool   // terminates TLS; only TLS entrypoints bind a cert resolver
	Class   VisibilityClass
}

// Entrypoints is the fixed listener set of the hub proxy, in generation
// order. Ports 80/443 are forwarded from the gateway router; 7080/7443 are
// never forwarded and stay LAN-only; 8080 carries the proxy dashboard.
var Entrypoints = []Entrypoint{
	{Name: "web", Address: ":80", TLS: false, Class: ClassPublic},
	{Name: "websecure", Address: ":443", TLS: true, Class: ClassPublic},
	{Name: "lanweb", Address: ":7080", TLS: false, Class: ClassPrivate},
	{Name: "lansecure", Address: ":7443", TLS: true, Class: ClassPrivate},
	{Name: "dashboard", Address: ":8080", TLS: false, Class: ClassDashboard},
}

// EntrypointByName returns the entrypoint with the given name.
func EntrypointByName(name string) (Entrypoint, bool) {
	for _, ep := range Entrypoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return Entrypoint{}, false
}
