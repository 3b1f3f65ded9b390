package model

// Carrier identifies a mobile carrier whose invoice vocabulary is known.
type Carrier string

// Known carriers, in registration order. Detection ties break toward the
// earlier entry.
const (
	CarrierSoftbank Carrier = "softbank"
	CarrierAu       Carrier = "au"
	CarrierDocomo   Carrier = "docomo"
	CarrierGeneric  Carrier = "generic"
)

// KnownCarriers returns the carriers with dedicated dictionaries, in
// registration order. Generic is the fallback and is deliberately excluded.
func KnownCarriers() []Carrier {
	return []Carrier{CarrierSoftbank, CarrierAu, CarrierDocomo}
}

// Valid reports whether the carrier has a dictionary, generic included.
func (c Carrier) Valid() bool {
	switch c {
	case CarrierSoftbank, CarrierAu, CarrierDocomo, CarrierGeneric:
		return true
	}
	return false
}
