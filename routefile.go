package relay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// routeFile is the YAML shape accepted by LoadRoutes. Routes is a list, not
// a map, so the document's order becomes the table's insertion order.
type routeFile struct {
	Separators string           `yaml:"separators"`
	Routes     []routeFileEntry `yaml:"routes"`
}

type routeFileEntry struct {
	ID         string   `yaml:"id"`
	Criteria   string   `yaml:"criteria"`
	Middleware []string `yaml:"middleware"`
	Dispatcher string   `yaml:"dispatcher"`
	Conditions []string `yaml:"conditions"`
}

// LoadRoutes registers the routes declared in YAML data, in document order.
// Handler and condition names resolve through the Router's Resolver.
//
// Example document:
//
//	separators: "/"
//	routes:
//	  - id: audit
//	    criteria: "/*/*"
//	    middleware: [audit]
//	  - id: user-get
//	    criteria: /user/:id
//	    dispatcher: user.get
//	    conditions: [authenticated]
func (r *Router) LoadRoutes(data []byte) error {
	var f routeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: parse yaml: %v", ErrInvalidRoutes, err)
	}

	var opts []RouteOption
	if f.Separators != "" {
		opts = append(opts, WithSeparators(f.Separators))
	}

	for i, entry := range f.Routes {
		if entry.ID == "" {
			return fmt.Errorf("%w: routes[%d] has no id", ErrInvalidRoute, i)
		}
		cfg := &RouteConfig{Criteria: entry.Criteria}
		for _, name := range entry.Middleware {
			cfg.Middleware = append(cfg.Middleware, name)
		}
		if entry.Dispatcher != "" {
			cfg.Dispatcher = entry.Dispatcher
		}
		for _, name := range entry.Conditions {
			cfg.Conditions = append(cfg.Conditions, name)
		}
		if err := r.Set(entry.ID, cfg, opts...); err != nil {
			return err
		}
	}
	return nil
}

// LoadRoutesFile reads path and registers its routes via LoadRoutes.
func (r *Router) LoadRoutesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read routes file: %w", err)
	}
	return r.LoadRoutes(data)
}
