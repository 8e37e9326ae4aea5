package enums

// Carrier identifies the delivery company recorded on a shipment. Until a real
// carrier integration exists the advancer picks one of these placeholders.
type Carrier string

const (
	CarrierDHL        Carrier = "dhl"
	CarrierChronopost Carrier = "chronopost"
	CarrierLaPoste    Carrier = "la_poste"
	CarrierLocal      Carrier = "coursier_local"
)

// Carriers lists every known carrier.
func Carriers() []Carrier {
	return []Carrier{CarrierDHL, CarrierChronopost, CarrierLaPoste, CarrierLocal}
}

// String implements fmt.Stringer.
func (c Carrier) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Carrier.
func (c Carrier) IsValid() bool {
	for _, candidate := range Carriers() {
		if candidate == c {
			return true
		}
	}
	return false
}
