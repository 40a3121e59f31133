package depthsegment

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/depthsegment/segment"
)

func TestThresholdClamp(t *testing.T) {
	c := NewController(State{Near: 0, Far: 255})
	for i := 0; i < 300; i++ {
		c.IncNear()
		c.DecFar()
	}
	test.That(t, c.Snapshot().Near, test.ShouldEqual, 255)
	test.That(t, c.Snapshot().Far, test.ShouldEqual, 0)

	for i := 0; i < 300; i++ {
		c.DecNear()
		c.IncFar()
	}
	test.That(t, c.Snapshot().Near, test.ShouldEqual, 0)
	test.That(t, c.Snapshot().Far, test.ShouldEqual, 255)

	c = NewController(State{Near: 400, Far: -3})
	test.That(t, c.Snapshot().Near, test.ShouldEqual, 255)
	test.That(t, c.Snapshot().Far, test.ShouldEqual, 0)
}

func TestHandleKey(t *testing.T) {
	c := NewController(State{Near: 230, Far: 70})

	for _, k := range "+=" {
		test.That(t, c.HandleKey(k), test.ShouldBeTrue)
	}
	test.That(t, c.HandleKey('-'), test.ShouldBeTrue)
	test.That(t, c.Snapshot().Near, test.ShouldEqual, 231)

	for _, k := range ">.>" {
		test.That(t, c.HandleKey(k), test.ShouldBeTrue)
	}
	for _, k := range "<," {
		test.That(t, c.HandleKey(k), test.ShouldBeTrue)
	}
	test.That(t, c.Snapshot().Far, test.ShouldEqual, 71)

	test.That(t, c.Snapshot().Strategy, test.ShouldEqual, segment.StrategyLibrary)
	test.That(t, c.HandleKey(' '), test.ShouldBeTrue)
	test.That(t, c.Snapshot().Strategy, test.ShouldEqual, segment.StrategyManual)
	c.ToggleStrategy()
	test.That(t, c.Snapshot().Strategy, test.ShouldEqual, segment.StrategyLibrary)

	test.That(t, c.Snapshot().View, test.ShouldEqual, ViewImages)
	test.That(t, c.HandleKey('p'), test.ShouldBeTrue)
	test.That(t, c.Snapshot().View, test.ShouldEqual, ViewPointCloud)
	test.That(t, c.Snapshot().View.String(), test.ShouldEqual, "point cloud")

	before := c.Snapshot()
	test.That(t, c.HandleKey('w'), test.ShouldBeFalse)
	test.That(t, c.HandleKey('q'), test.ShouldBeFalse)
	test.That(t, c.Snapshot(), test.ShouldResemble, before)
}
