package models

// TemplateContext is the rendering input built per (package, channel version)
type TemplateContext map[string]any

// Clone returns a shallow copy; nested about/extra maps are shared read-only
func (c TemplateContext) Clone() TemplateContext {
	out := make(TemplateContext, len(c)+8)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// String returns the value of key when it is a string
func (c TemplateContext) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// VersionPlatforms is one published version and the platforms it was built for
type VersionPlatforms struct {
	Version   string
	Platforms []string
}
