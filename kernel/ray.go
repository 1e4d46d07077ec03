package kernel

// Ray is an immutable in-flight ray as it crosses tile boundaries — spec
// §3. Theta is preserved end-to-end; Alpha is updated as the ray is
// retraced through each tile it enters, V0 is carried unchanged, and rays
// emitted by the kernel always carry a zero Metric0.
type Ray struct {
	// Theta is the launch azimuth from the originating observer, in
	// radians, measured clockwise from north (0 = north, pi/2 = east).
	Theta float64

	// Alpha is the running maximum tangent of elevation angle observed
	// so far along this ray.
	Alpha float64

	// V0 is the ray's intensity at entry to the current tile. The
	// engine only aggregates visibility (spec §1 Non-goals excludes
	// intensity/distance fields), so V0 is carried through unchanged —
	// it exists so the wire format can host a future intensity-producing
	// operator without changing the Ray shape.
	V0 float64

	// Metric0 is a metric offset added to the distance the kernel
	// measures from the (translated) observer origin. Because that
	// distance already spans the whole path from the observer, emitted
	// rays set it to zero.
	Metric0 float64
}

// byTheta sorts a Ray slice into the ascending-theta order the driver
// requires before feeding rays into a neighboring tile's kernel — spec
// §4.E: "sort rays by theta ascending".
type byTheta []Ray

func (r byTheta) Len() int           { return len(r) }
func (r byTheta) Less(i, j int) bool { return r[i].Theta < r[j].Theta }
func (r byTheta) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
