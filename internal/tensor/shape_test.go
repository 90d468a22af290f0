package tensor

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{3, 4}, 12},
		{"3d", Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.NumElements(); got != tt.want {
				t.Errorf("NumElements() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeString(t *testing.T) {
	if got := (Shape{2, 3}).String(); got != "{2 3}" {
		t.Errorf("String() = %q, want %q", got, "{2 3}")
	}
	if got := (Shape{}).String(); got != "{}" {
		t.Errorf("scalar String() = %q, want %q", got, "{}")
	}
}

func TestComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("ComputeStrides() = %v, want %v", strides, want)
		}
	}
	if got := (Shape{}).ComputeStrides(); len(got) != 0 {
		t.Errorf("scalar strides = %v, want empty", got)
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"equal", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"ones expand", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"rank extend", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"scalar", Shape{}, Shape{2, 3}, Shape{2, 3}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("shape = %v, want %v", got, tt.want)
			}
			if broadcast != tt.broadcast {
				t.Errorf("broadcast flag = %v, want %v", broadcast, tt.broadcast)
			}
		})
	}
}

func TestBroadcastableTo(t *testing.T) {
	if !(Shape{1, 5}).BroadcastableTo(Shape{3, 5}) {
		t.Error("{1 5} should broadcast to {3 5}")
	}
	if !(Shape{}).BroadcastableTo(Shape{2, 2}) {
		t.Error("scalar should broadcast to anything")
	}
	if (Shape{2, 5}).BroadcastableTo(Shape{3, 5}) {
		t.Error("{2 5} should not broadcast to {3 5}")
	}
	if (Shape{1, 1, 5}).BroadcastableTo(Shape{3, 5}) {
		t.Error("higher rank should not broadcast down")
	}
}

func TestReduceShape(t *testing.T) {
	s := Shape{2, 3, 4}
	if got := s.ReduceShape([]int{1}); !got.Equal(Shape{2, 4}) {
		t.Errorf("ReduceShape([1]) = %v, want {2 4}", got)
	}
	if got := s.ReduceShape([]int{0, 1, 2}); !got.Equal(Shape{}) {
		t.Errorf("full reduction = %v, want scalar", got)
	}
	if got := s.ReduceShape(nil); !got.Equal(Shape{}) {
		t.Errorf("nil axes = %v, want scalar (reduce all)", got)
	}
}
