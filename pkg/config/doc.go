// Package config provides a category-keyed configuration store.
//
// Configuration is a tree of ordered maps. The first level holds categories
// ("routes", "view", "framework", ...) and each category is an ordered map of
// keys to values. Key order is kept exactly as declared in the source file,
// which matters to consumers such as the router where declaration order is
// matching priority.
//
// # Loading
//
// Files are YAML (.yaml, .yml) or JSON (.json). JSON is parsed with the YAML
// decoder, which accepts it as a subset:
//
//	store := config.New()
//	if err := store.LoadFS(os.DirFS("config")); err != nil {
//	    return err
//	}
//	routes := store.Category("routes")
//	for _, name := range routes.Keys() {
//	    def := routes.Map(name)
//	    _ = def.String("route")
//	}
//
// # Merging
//
// Sources are merged in load order. Maps merge key by key, everything else
// (scalars and lists) is replaced by the later value. A file path is parsed at
// most once per store.
//
// Category never returns nil: a missing category is an empty map.
package config
