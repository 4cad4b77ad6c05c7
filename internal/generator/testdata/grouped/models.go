package grouped

//buildergen:builder
type (
	Width struct {
		N int
	}

	Height struct {
		N int
	}
)

type (
	//buildergen:builder
	Area struct {
		N int
	}

	Volume struct {
		N int
	}
)
