package landmark

// MeshPoints is the landmark cardinality of the full face mesh.
const MeshPoints = 468

// AnchorIndex is the forehead landmark used as the caption bubble
// attachment point.
const AnchorIndex = 10

// LipPair is one upper/lower lip landmark pairing used for the mouth
// openness measure.
type LipPair struct {
	Upper int
	Lower int
}

// LipPairs are the 13 upper/lower pairings averaged into the openness
// scalar, ordered from the mouth center outward.
var LipPairs = []LipPair{
	{13, 14},
	{82, 87},
	{81, 178},
	{80, 88},
	{191, 95},
	{312, 317},
	{311, 402},
	{310, 318},
	{415, 324},
	{0, 17},
	{37, 84},
	{267, 314},
	{269, 405},
}

// Contour is a named polyline over landmark indices.
type Contour struct {
	Name    string
	Indices []int
	Closed  bool
}

// Contours are the per-feature connector groups drawn by the overlay
// renderer. Index sequences follow the face mesh topology.
var Contours = []Contour{
	{
		Name: "oval",
		Indices: []int{
			10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
			397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
			172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
		},
		Closed: true,
	},
	{
		Name: "lipsOuter",
		Indices: []int{
			61, 185, 40, 39, 37, 0, 267, 269, 270, 409, 291,
			375, 321, 405, 314, 17, 84, 181, 91, 146,
		},
		Closed: true,
	},
	{
		Name: "lipsInner",
		Indices: []int{
			78, 191, 80, 81, 82, 13, 312, 311, 310, 415, 308,
			324, 318, 402, 317, 14, 87, 178, 88, 95,
		},
		Closed: true,
	},
	{
		Name: "leftEye",
		Indices: []int{
			33, 7, 163, 144, 145, 153, 154, 155, 133,
			173, 157, 158, 159, 160, 161, 246,
		},
		Closed: true,
	},
	{
		Name: "rightEye",
		Indices: []int{
			263, 249, 390, 373, 374, 380, 381, 382, 362,
			398, 384, 385, 386, 387, 388, 466,
		},
		Closed: true,
	},
	{
		Name:    "leftEyebrowTop",
		Indices: []int{70, 63, 105, 66, 107},
	},
	{
		Name:    "leftEyebrowBottom",
		Indices: []int{46, 53, 52, 65, 55},
	},
	{
		Name:    "rightEyebrowTop",
		Indices: []int{300, 293, 334, 296, 336},
	},
	{
		Name:    "rightEyebrowBottom",
		Indices: []int{276, 283, 282, 295, 285},
	},
}
