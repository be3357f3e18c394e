package layout

// pushValues runs the Refresh hook of every realized element so measuring
// sees current values. Elements realized later in the pass receive theirs
// through Setup.
func (e *Engine) pushValues() {
	leading, trailing := e.realize.Scalars()
	for _, sv := range append(leading, trailing...) {
		sv.Placement.Binding.Refresh(sv.Element)
	}

	blocks := e.tmpl.Blocks()
	rowBindings := e.tmpl.Rows()
	for _, v := range e.realize.Realized() {
		if len(blocks) > 0 {
			bc := v.BlockContext()
			for j, p := range blocks {
				p.Binding.Refresh(v.Blocks[j], bc)
			}
		}
		for _, rv := range v.Rows {
			for j, p := range rowBindings {
				p.Binding.Refresh(rv.Elements[j], rv.Presenter)
			}
		}
	}
}
