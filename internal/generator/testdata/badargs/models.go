package badargs

//buildergen:builder frobnicate
type Widget struct {
	Size int
}
