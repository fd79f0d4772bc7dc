package mesher

// buildFaceMasks derives the six visibility groups from the opaque bitset.
// Y and X faces are shifted right by one so bit 0 is interior depth 1; Z
// faces keep bit p at depth p. Halo bits never survive the interior mask.
func (w *Workspace) buildFaceMasks() {
	d := w.dims
	cs, csp := d.CS, d.CSP
	cs2 := cs * cs
	interior := d.interiorMask()
	opaque := w.opaque

	posY := w.faceMasks[0*cs2 : 1*cs2]
	negY := w.faceMasks[1*cs2 : 2*cs2]
	posX := w.faceMasks[2*cs2 : 3*cs2]
	negX := w.faceMasks[3*cs2 : 4*cs2]
	posZ := w.faceMasks[4*cs2 : 5*cs2]
	negZ := w.faceMasks[5*cs2 : 6*cs2]

	for a := 1; a < csp-1; a++ {
		acsp := a * csp
		for b := 1; b < csp-1; b++ {
			col := opaque[acsp+b] & interior
			ba := (b - 1) + (a-1)*cs
			ab := (a - 1) + (b-1)*cs

			posY[ba] = (col &^ opaque[acsp+csp+b]) >> 1
			negY[ba] = (col &^ opaque[acsp-csp+b]) >> 1

			posX[ab] = (col &^ opaque[acsp+b+1]) >> 1
			negX[ab] = (col &^ opaque[acsp+b-1]) >> 1

			posZ[ba] = col &^ (opaque[acsp+b] >> 1)
			negZ[ba] = col &^ (opaque[acsp+b] << 1)
		}
	}
}
