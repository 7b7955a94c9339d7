package render

// GeoJSON renders input and never fails. Errors and panics are logged and
// reported as a nil result, so callers that only care about the happy path
// can ignore them. A nil opt uses the defaults.
func (e *Engine) GeoJSON(input any, opt *Option) (res *Result) {
	var o Option
	if opt != nil {
		o = *opt
	}
	name := o.Name
	if name == "" {
		name = DefaultLayerName
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render panicked", "layer", name, "panic", r)
			res = nil
		}
	}()

	res, err := e.Render(input, o)
	if err != nil {
		e.logger.Error("render failed", "layer", name, "error", err)
		return nil
	}
	return res
}
