package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	forwardAxis = mgl64.Vec3{0, 0, 1}
	upAxis      = mgl64.Vec3{0, 1, 0}
)

const steerEpsilon = 1e-9

// LookRotation returns the orientation whose forward axis points along dir with
// no roll. A zero dir yields the identity.
func LookRotation(dir mgl64.Vec3) mgl64.Quat {
	l := dir.Len()
	if l < steerEpsilon {
		return mgl64.QuatIdent()
	}
	d := dir.Mul(1 / l)
	yaw := math.Atan2(d.X(), d.Z())
	pitch := -math.Asin(clamp(d.Y(), -1, 1))
	qYaw := mgl64.QuatRotate(yaw, upAxis)
	qPitch := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	return qYaw.Mul(qPitch).Normalize()
}

// RotateTowards turns the unit direction of current toward target by at most
// maxRadians and returns a unit vector. A zero target leaves current unchanged.
func RotateTowards(current, target mgl64.Vec3, maxRadians float64) mgl64.Vec3 {
	cl, tl := current.Len(), target.Len()
	if tl < steerEpsilon {
		if cl < steerEpsilon {
			return forwardAxis
		}
		return current.Mul(1 / cl)
	}
	b := target.Mul(1 / tl)
	if cl < steerEpsilon {
		return b
	}
	a := current.Mul(1 / cl)
	angle := math.Acos(clamp(a.Dot(b), -1, 1))
	if angle <= maxRadians || angle < steerEpsilon {
		return b
	}
	if maxRadians <= 0 {
		return a
	}
	axis := a.Cross(b)
	if axis.Len() < steerEpsilon {
		// Antiparallel: any perpendicular axis works; prefer turning about up.
		axis = a.Cross(upAxis)
		if axis.Len() < steerEpsilon {
			axis = a.Cross(mgl64.Vec3{1, 0, 0})
		}
	}
	return mgl64.QuatRotate(maxRadians, axis.Normalize()).Rotate(a).Normalize()
}

// MoveTowards moves cur toward target by at most maxDelta without overshoot.
func MoveTowards(cur, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	diff := target.Sub(cur)
	d := diff.Len()
	if d <= maxDelta || d < steerEpsilon {
		return target
	}
	return cur.Add(diff.Mul(maxDelta / d))
}

// SlerpTowards interpolates from toward to by factor t along the shortest arc.
// t is clamped to [0, 1].
func SlerpTowards(from, to mgl64.Quat, t float64) mgl64.Quat {
	t = clamp(t, 0, 1)
	if t == 0 {
		return from
	}
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	if t == 1 {
		return to.Normalize()
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

// Flatten drops the vertical component of v.
func Flatten(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

// Yaw returns the ground-plane heading of a pose in radians, 0 = +Z.
func Yaw(q mgl64.Quat) float64 {
	f := q.Rotate(forwardAxis)
	return math.Atan2(f.X(), f.Z())
}

// normalizeAngle wraps an angle to [-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// AngleBetween returns the unsigned angle between two orientations' forward axes.
func AngleBetween(a, b mgl64.Quat) float64 {
	fa := a.Rotate(forwardAxis)
	fb := b.Rotate(forwardAxis)
	return math.Acos(clamp(fa.Dot(fb), -1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
