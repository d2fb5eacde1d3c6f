package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func player(label string, x, z float64) *Actor {
	return &Actor{
		Label:    label,
		Category: CategoryPlayer,
		Pose:     Pose{Position: mgl64.Vec3{x, 0, z}, Orientation: mgl64.QuatIdent()},
		Health:   NewHealth(100, 1),
	}
}

func TestDirectory_MutationsWaitForCommit(t *testing.T) {
	d := NewDirectory()
	a := player("P0", 0, 0)
	h := d.Add(a)

	d.Deactivate(h)
	if _, ok := d.Live(h); !ok {
		t.Fatal("deactivation must not apply before Commit")
	}
	if d.Pending() != 1 {
		t.Fatalf("pending=%d want 1", d.Pending())
	}
	d.Commit()
	if _, ok := d.Live(h); ok {
		t.Fatal("actor should be inactive after Commit")
	}
	if _, ok := d.Lookup(h); !ok {
		t.Fatal("inactive actors still resolve through Lookup")
	}
	if d.Len() != 0 {
		t.Fatalf("live=%d want 0", d.Len())
	}

	d.Activate(h)
	if got := d.Commit(); len(got) != 1 || got[0] != h {
		t.Fatalf("Commit returned %v, want [%s]", got, h)
	}
	if d.Len() != 1 {
		t.Fatalf("live=%d want 1", d.Len())
	}
}

func TestDirectory_DestroyInvalidatesHandle(t *testing.T) {
	d := NewDirectory()
	h := d.Add(player("P0", 0, 0))
	d.Destroy(h)
	d.Commit()
	if _, ok := d.Lookup(h); ok {
		t.Fatal("destroyed handle must not resolve")
	}

	h2 := d.Add(player("P1", 0, 0))
	if h2.index != h.index {
		t.Fatalf("expected slot reuse, got %s after %s", h2, h)
	}
	if h2 == h {
		t.Fatal("reused slot must carry a new generation")
	}
	if _, ok := d.Lookup(h); ok {
		t.Fatal("stale handle resolved to the new occupant")
	}
	if a, ok := d.Lookup(h2); !ok || a.Label != "P1" {
		t.Fatal("new handle should resolve to P1")
	}
}

func TestDirectory_ZeroHandleNeverResolves(t *testing.T) {
	d := NewDirectory()
	d.Add(player("P0", 0, 0))
	if _, ok := d.Lookup(Handle{}); ok {
		t.Fatal("zero handle resolved")
	}
	if !(Handle{}).IsZero() {
		t.Fatal("zero handle should report IsZero")
	}
}

func TestDirectory_NearestSkipsInactiveAndInert(t *testing.T) {
	d := NewDirectory()
	near := d.Add(player("P0", 1, 0))
	d.Add(&Actor{Label: "P-ghost", Category: CategoryPlayer, Pose: Pose{Position: mgl64.Vec3{0.5, 0, 0}}})
	d.Add(player("P1", 3, 0))
	creature := player("C0", 0.1, 0)
	creature.Category = CategoryEnemy
	d.Add(creature)

	a, dist, ok := d.Nearest(mgl64.Vec3{}, CategoryPlayer)
	if !ok || a.Label != "P0" || dist != 1 {
		t.Fatalf("nearest=%v dist=%.2f, want P0 at 1", a, dist)
	}

	d.Deactivate(near)
	d.Commit()
	a, _, ok = d.Nearest(mgl64.Vec3{}, CategoryPlayer)
	if !ok || a.Label != "P1" {
		t.Fatalf("with P0 inactive nearest=%v, want P1", a)
	}
}

func TestDirectory_NearestTieKeepsDiscoveryOrder(t *testing.T) {
	d := NewDirectory()
	d.Add(player("P0", 0, 5))
	d.Add(player("P1", 5, 0))
	d.Add(player("P2", -5, 0))
	a, _, _ := d.Nearest(mgl64.Vec3{}, CategoryPlayer)
	if a.Label != "P0" {
		t.Fatalf("tie resolved to %s, want P0", a.Label)
	}
	if f, _ := d.First(CategoryPlayer); f.Label != "P0" {
		t.Fatalf("First=%s want P0", f.Label)
	}
}

func TestTargetRef_Resolve(t *testing.T) {
	d := NewDirectory()
	h := d.Add(player("P0", 0, 0))
	ref := RefTo(h)

	if _, ok, gone := ref.Resolve(d); !ok || gone {
		t.Fatal("active target should resolve")
	}
	d.Deactivate(h)
	d.Commit()
	if _, ok, gone := ref.Resolve(d); ok || gone {
		t.Fatalf("inactive target: ok=%v gone=%v, want false/false", ok, gone)
	}
	d.Destroy(h)
	d.Commit()
	if _, ok, gone := ref.Resolve(d); ok || !gone {
		t.Fatalf("destroyed target: ok=%v gone=%v, want false/true", ok, gone)
	}
	if _, ok, gone := (TargetRef{}).Resolve(d); ok || gone {
		t.Fatal("unbound reference resolves to nothing without being gone")
	}
}

func TestParseCategory_RoundTrip(t *testing.T) {
	for _, c := range []Category{CategoryPlayer, CategoryEnemy, CategoryNeutral, CategoryObstacle} {
		got, ok := ParseCategory(c.String())
		if !ok || got != c {
			t.Fatalf("ParseCategory(%q)=%v,%v", c.String(), got, ok)
		}
	}
	if _, ok := ParseCategory("block"); ok {
		t.Fatal("unknown category name accepted")
	}
}

func TestActor_ContactSphere(t *testing.T) {
	a := player("P0", 2, 3)
	a.Bounds = nil
	c, r := a.ContactSphere()
	if c != (mgl64.Vec3{2, implicitBodyRadius, 3}) || r != implicitBodyRadius {
		t.Fatalf("unbounded damageable: center %v radius %.2f", c, r)
	}
	if aim := a.Pose.Position.Add(mgl64.Vec3{0, defaultAimOffsetY, 0}); aim.Sub(c).Len() > r {
		t.Fatal("the default aim point must lie inside the implicit sphere")
	}

	a.Bounds = &Bounds{Offset: mgl64.Vec3{0, 1, 0}, Radius: 0.8}
	if c, r = a.ContactSphere(); c != (mgl64.Vec3{2, 1, 3}) || r != 0.8 {
		t.Fatalf("bounded: center %v radius %.2f", c, r)
	}

	marker := &Actor{Label: "N0", Category: CategoryNeutral, Pose: Pose{Position: mgl64.Vec3{1, 0, 1}}}
	if c, r = marker.ContactSphere(); c != (mgl64.Vec3{1, 0, 1}) || r != 0 {
		t.Fatalf("inert marker: center %v radius %.2f", c, r)
	}
}
