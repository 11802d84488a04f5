package gpubind

// Program is a linked shader program as seen by the binder. Locations and
// bindings are native values: uniform block indices, uniform locations or
// storage block indices, depending on the range.
type Program interface {
	// Label identifies the program in logs.
	Label() string

	// Location returns the native location of the resource called name,
	// or false when the program does not use it.
	Location(r BindingRange, name string) (uint32, bool)

	// CanRebind reports whether bindings in range r can be set after linking.
	CanRebind(r BindingRange) bool

	// Rebind assigns binding to location loc.
	Rebind(r BindingRange, loc, binding uint32) error

	// CurrentBinding returns the binding assigned to location loc.
	CurrentBinding(r BindingRange, loc uint32) (uint32, bool)
}

// BindReport counts the outcome of applying a signature to a program.
type BindReport struct {
	// Rebound elements were assigned their binding.
	Rebound int
	// Matched elements already had the expected binding.
	Matched int
	// Mismatched elements kept a binding other than the expected one.
	Mismatched int
	// Skipped resources are not used by the program.
	Skipped int
}

// Add returns the sum of two reports.
func (r BindReport) Add(o BindReport) BindReport {
	return BindReport{
		Rebound:    r.Rebound + o.Rebound,
		Matched:    r.Matched + o.Matched,
		Mismatched: r.Mismatched + o.Mismatched,
		Skipped:    r.Skipped + o.Skipped,
	}
}

// ApplyBindings maps the slots of sig onto the native binding points of
// prog. Every non-sampler resource visible to stages gets binding
// base[range] + cache offset + array index. Resources the program does not
// use are skipped. Where a range cannot be rebound, or rebinding fails,
// the expected and current bindings are compared and a mismatch is logged
// as a warning. ApplyBindings never fails.
func ApplyBindings(prog Program, sig *Signature, stages ShaderStages, base BindingTable) BindReport {
	var rep BindReport
	log := Logger()

	for i := range sig.desc.Resources {
		rd := &sig.desc.Resources[i]
		if rd.Type == ResourceSampler || !rd.ShaderStages.Overlaps(stages) {
			continue
		}
		rng, err := ClassifyResource(rd)
		if err != nil {
			continue
		}

		loc, ok := prog.Location(rng, rd.Name)
		if !ok {
			rep.Skipped++
			continue
		}

		binding := base[rng] + sig.attribs[i].CacheOffset
		for elem := uint32(0); elem < rd.slotCount(); elem++ {
			want := binding + elem
			if prog.CanRebind(rng) {
				err := prog.Rebind(rng, loc+elem, want)
				if err == nil {
					rep.Rebound++
					continue
				}
				log.Debug("gpubind: rebind failed", "program", prog.Label(), "resource", rd.Name, "err", err)
			}

			cur, known := prog.CurrentBinding(rng, loc+elem)
			if known && cur == want {
				rep.Matched++
				continue
			}
			rep.Mismatched++
			log.Warn("gpubind: binding differs from the signature and cannot be changed; assign it explicitly in the shader source",
				"program", prog.Label(),
				"range", rng.String(),
				"resource", arrayElementName(rd.Name, elem, rd.ArraySize),
				"expected", want,
				"current", cur)
		}
	}
	return rep
}

// ApplyBindings applies every signature of the layout with its base bindings.
func (l *PipelineLayout) ApplyBindings(prog Program, stages ShaderStages) BindReport {
	var rep BindReport
	for i, s := range l.signatures {
		if s == nil {
			continue
		}
		rep = rep.Add(ApplyBindings(prog, s, stages, l.bases[i]))
	}
	return rep
}
