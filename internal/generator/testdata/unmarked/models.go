package unmarked

type Plain struct {
	A int
	B string
}
