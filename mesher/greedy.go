package mesher

import "math/bits"

// sweepLateral merges the visibility bits of a Y or X face. The outer loops
// walk layer then forward; bit p of each word is the right coordinate.
// forwardMerged[p] counts the rows the run at p has already absorbed.
func (w *Workspace) sweepLateral(face Face) {
	d := w.dims
	cs := d.CS
	axis := face.axis()
	masks := w.faceMask(face)
	fm := w.forwardMerged[:cs]
	voxels := w.voxels

	var upOffset int
	if face.positive() {
		upOffset = 1
	}

	for layer := 0; layer < cs; layer++ {
		rowBase := layer * cs
		for forward := 0; forward < cs; forward++ {
			bitsHere := masks[rowBase+forward]
			if bitsHere == 0 {
				continue
			}
			var bitsNext uint64
			if forward+1 < cs {
				bitsNext = masks[rowBase+forward+1]
			}

			rightRun := 1
			for bitsHere != 0 {
				p := bits.TrailingZeros64(bitsHere)
				mat := voxels[d.axisIndex(axis, forward+1, p+1, layer+1)]
				run := fm[p]

				if bitsNext>>uint(p)&1 != 0 && mat == voxels[d.axisIndex(axis, forward+2, p+1, layer+1)] {
					fm[p]++
					bitsHere &^= 1 << uint(p)
					continue
				}

				for right := p + 1; right < cs; right++ {
					if bitsHere>>uint(right)&1 == 0 || fm[right] != run ||
						mat != voxels[d.axisIndex(axis, forward+1, right+1, layer+1)] {
						break
					}
					fm[right] = 0
					rightRun++
				}
				bitsHere &^= bitRange(0, p+rightRun)

				front := forward - int(run)
				left := p
				up := layer + upOffset
				length := int(run) + 1
				width := rightRun

				fm[p] = 0
				rightRun = 1

				var q Quad
				switch face {
				case FacePosY:
					q = PackQuad(uint32(front), uint32(up), uint32(left), uint32(length), uint32(width), mat)
				case FaceNegY:
					q = PackQuad(uint32(front+length), uint32(up), uint32(left), uint32(length), uint32(width), mat)
				case FacePosX:
					q = PackQuad(uint32(up), uint32(front+length), uint32(left), uint32(length), uint32(width), mat)
				default:
					q = PackQuad(uint32(up), uint32(front), uint32(left), uint32(length), uint32(width), mat)
				}
				w.quads = append(w.quads, q)
			}
		}
	}
}

// sweepVertical merges the visibility bits of a Z face. The outer loops walk
// forward (y) then right (x); bit p of each word is the depth itself, so
// run bookkeeping is indexed by p-1. forwardMerged is CS×CS here and
// rightMerged carries a run across columns of the same row.
func (w *Workspace) sweepVertical(face Face) {
	d := w.dims
	cs := d.CS
	masks := w.faceMask(face)
	fm := w.forwardMerged
	rm := w.rightMerged
	voxels := w.voxels

	var upOffset int
	if face.positive() {
		upOffset = 1
	}

	for forward := 0; forward < cs; forward++ {
		rowBase := forward * cs
		for right := 0; right < cs; right++ {
			bitsHere := masks[rowBase+right]
			if bitsHere == 0 {
				continue
			}
			var bitsForward, bitsRight uint64
			if forward+1 < cs {
				bitsForward = masks[rowBase+cs+right]
			}
			if right+1 < cs {
				bitsRight = masks[rowBase+right+1]
			}
			rightCS := right * cs

			for bitsHere != 0 {
				p := bits.TrailingZeros64(bitsHere)
				bitsHere &^= 1 << uint(p)

				mat := voxels[d.axisIndex(2, right+1, forward+1, p)]
				fi := rightCS + p - 1
				fwd := fm[fi]
				rgt := rm[p-1]

				if rgt == 0 && bitsForward>>uint(p)&1 != 0 &&
					mat == voxels[d.axisIndex(2, right+1, forward+2, p)] {
					fm[fi]++
					continue
				}

				var nextFwd uint8
				if right+1 < cs {
					nextFwd = fm[rightCS+cs+p-1]
				}
				if bitsRight>>uint(p)&1 != 0 && fwd == nextFwd &&
					mat == voxels[d.axisIndex(2, right+2, forward+1, p)] {
					fm[fi] = 0
					rm[p-1]++
					continue
				}

				left := right - int(rgt)
				front := forward - int(fwd)
				up := p - 1 + upOffset
				width := int(rgt) + 1
				length := int(fwd) + 1

				fm[fi] = 0
				rm[p-1] = 0

				x := left
				if face == FacePosZ {
					x += width
				}
				w.quads = append(w.quads, PackQuad(uint32(x), uint32(front), uint32(up), uint32(width), uint32(length), mat))
			}
		}
	}
}
