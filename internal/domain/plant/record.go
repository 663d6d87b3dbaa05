package plant

// Unmeasured marks a service or reliability slot with no measurement.
const Unmeasured = -1.0

// Record is the environmental profile of one species or one plot entry.
type Record struct {
	Name          string                `json:"name"`
	Services      [ServiceCount]float64 `json:"services"`
	Reliabilities [ServiceCount]float64 `json:"reliabilities"`
	Conditions    [ServiceCount]string  `json:"culturalConditions"`
}

// NewRecord returns a record with every slot unmeasured.
func NewRecord(name string) Record {
	return Record{
		Name:          name,
		Services:      [ServiceCount]float64{Unmeasured, Unmeasured, Unmeasured},
		Reliabilities: [ServiceCount]float64{Unmeasured, Unmeasured, Unmeasured},
	}
}

func (r Record) Service(kind ServiceKind) (float64, error) {
	idx := kind.Index()
	if idx < 0 {
		return 0, ErrInvalidServiceKind
	}
	return r.Services[idx], nil
}

func (r Record) Reliability(kind ServiceKind) (float64, error) {
	idx := kind.Index()
	if idx < 0 {
		return 0, ErrInvalidServiceKind
	}
	return r.Reliabilities[idx], nil
}

func (r Record) Condition(kind ServiceKind) (string, error) {
	idx := kind.Index()
	if idx < 0 {
		return "", ErrInvalidServiceKind
	}
	return r.Conditions[idx], nil
}

func (r *Record) SetService(kind ServiceKind, value float64) error {
	idx := kind.Index()
	if idx < 0 {
		return ErrInvalidServiceKind
	}
	r.Services[idx] = value
	return nil
}

func (r *Record) SetReliability(kind ServiceKind, value float64) error {
	idx := kind.Index()
	if idx < 0 {
		return ErrInvalidServiceKind
	}
	r.Reliabilities[idx] = value
	return nil
}

func (r *Record) SetCondition(kind ServiceKind, condition string) error {
	idx := kind.Index()
	if idx < 0 {
		return ErrInvalidServiceKind
	}
	r.Conditions[idx] = condition
	return nil
}

// Measured reports whether the service slot for kind holds a value.
func (r Record) Measured(kind ServiceKind) bool {
	idx := kind.Index()
	return idx >= 0 && r.Services[idx] != Unmeasured
}

// Fraction returns the service score clamped to [0,1]; unmeasured and invalid kinds give 0.
func (r Record) Fraction(kind ServiceKind) float64 {
	idx := kind.Index()
	if idx < 0 {
		return 0
	}
	return clamp01(r.Services[idx])
}

// HasAnyPositiveService reports whether at least one service score is above zero.
func (r Record) HasAnyPositiveService() bool {
	for _, v := range r.Services {
		if v > 0 {
			return true
		}
	}
	return false
}

// Equal compares the name and all three arrays element-wise.
func (r Record) Equal(other Record) bool {
	return r.Name == other.Name &&
		r.Services == other.Services &&
		r.Reliabilities == other.Reliabilities &&
		r.Conditions == other.Conditions
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
