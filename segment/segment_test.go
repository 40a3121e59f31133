package segment

import (
	"image"
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func randomFrame(seed int64, w, h int) *image.Gray {
	r := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	r.Read(img.Pix)
	return img
}

func countSet(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v == 255 {
			n++
		}
	}
	return n
}

func TestStrategiesAgree(t *testing.T) {
	frame := randomFrame(1, 64, 48)
	pairs := [][2]int{{230, 70}, {255, 0}, {128, 127}, {200, 199}, {256, -1}, {1, 0}, {300, 250}}
	for _, p := range pairs {
		near, far := p[0], p[1]
		manual := NewMask(64, 48)
		library := NewMask(64, 48)
		test.That(t, Segment(StrategyManual, frame, near, far, manual), test.ShouldBeNil)
		test.That(t, Segment(StrategyLibrary, frame, near, far, library), test.ShouldBeNil)
		test.That(t, library.Pix, test.ShouldResemble, manual.Pix)
	}
}

func TestInvertedBandIsEmpty(t *testing.T) {
	frame := randomFrame(2, 32, 32)
	for _, strategy := range []Strategy{StrategyLibrary, StrategyManual} {
		for _, p := range [][2]int{{70, 230}, {100, 100}, {0, 0}, {0, 255}} {
			mask := NewMask(32, 32)
			test.That(t, Segment(strategy, frame, p[0], p[1], mask), test.ShouldBeNil)
			test.That(t, countSet(mask), test.ShouldEqual, 0)
		}
	}
}

func TestBoundsAreExcluded(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 4, 1))
	copy(frame.Pix, []uint8{70, 71, 229, 230})

	for _, strategy := range []Strategy{StrategyLibrary, StrategyManual} {
		t.Run(strategy.String(), func(t *testing.T) {
			mask := NewMask(4, 1)
			test.That(t, Segment(strategy, frame, 230, 70, mask), test.ShouldBeNil)
			test.That(t, mask.Pix, test.ShouldResemble, []uint8{0, 255, 255, 0})
		})
	}
}

func TestSegmentIsIdempotent(t *testing.T) {
	frame := randomFrame(3, 40, 30)
	for _, strategy := range []Strategy{StrategyLibrary, StrategyManual} {
		first := NewMask(40, 30)
		second := NewMask(40, 30)
		test.That(t, Segment(strategy, frame, 180, 40, first), test.ShouldBeNil)
		test.That(t, Segment(strategy, frame, 180, 40, second), test.ShouldBeNil)
		test.That(t, second.Pix, test.ShouldResemble, first.Pix)
	}
}

func TestSegmentInPlace(t *testing.T) {
	frame := randomFrame(4, 16, 16)
	want := NewMask(16, 16)
	ManualBandPass(frame, 200, 50, want)

	for _, strategy := range []Strategy{StrategyLibrary, StrategyManual} {
		work := randomFrame(4, 16, 16)
		test.That(t, Segment(strategy, work, 200, 50, work), test.ShouldBeNil)
		test.That(t, work.Pix, test.ShouldResemble, want.Pix)
	}
}

func TestOutOfRangeThresholds(t *testing.T) {
	frame := randomFrame(5, 8, 8)
	for _, strategy := range []Strategy{StrategyLibrary, StrategyManual} {
		mask := NewMask(8, 8)
		test.That(t, Segment(strategy, frame, 1000, -1000, mask), test.ShouldBeNil)
		test.That(t, countSet(mask), test.ShouldEqual, 64)
	}
}

func TestSizeMismatch(t *testing.T) {
	err := Segment(StrategyManual, NewMask(4, 4), 200, 10, NewMask(4, 5))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not match")
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyLibrary, StrategyManual} {
		parsed, err := ParseStrategy(s.String())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, s)
	}
	_, err := ParseStrategy("opencv")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, Strategy(7).String(), test.ShouldEqual, "unknown")
}

func TestPackedSubImage(t *testing.T) {
	img := randomFrame(6, 10, 10)
	sub, ok := img.SubImage(image.Rect(2, 3, 6, 5)).(*image.Gray)
	test.That(t, ok, test.ShouldBeTrue)
	pix := Packed(sub)
	test.That(t, len(pix), test.ShouldEqual, 8)
	test.That(t, pix[0], test.ShouldEqual, img.GrayAt(2, 3).Y)
	test.That(t, pix[7], test.ShouldEqual, img.GrayAt(5, 4).Y)
}
