package encoding

// Serializable is a value with its own binary form. Stores persist anything
// that implements it without knowing the layout.
type Serializable[T any] interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}
