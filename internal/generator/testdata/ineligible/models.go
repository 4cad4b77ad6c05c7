package ineligible

//buildergen:builder
type Codec interface {
	Encode() ([]byte, error)
}

//buildergen:builder
type Names = []string

//buildergen:builder
type Sound struct {
	Volume int
}
