package render

import "sort"

const bvhLeafSize = 4

type bvhNode struct {
	box         AABB
	left, right *bvhNode
	items       []int // Primitive indices, leaves only
}

// buildBVH splits primitives at the median of the longest axis of their
// centroid bounds.
func buildBVH(prims []Primitive, items []int) *bvhNode {
	if len(items) == 0 {
		return nil
	}
	node := &bvhNode{box: EmptyAABB()}
	centroids := EmptyAABB()
	for _, i := range items {
		b := prims[i].Bounds()
		node.box = node.box.Union(b)
		c := b.Center()
		centroids = centroids.Union(AABB{Min: c, Max: c})
	}
	if len(items) <= bvhLeafSize {
		node.items = items
		return node
	}

	ext := centroids.Max.Sub(centroids.Min)
	axis := func(i int) float64 { return prims[i].Bounds().Center().X }
	switch {
	case ext.Y >= ext.X && ext.Y >= ext.Z:
		axis = func(i int) float64 { return prims[i].Bounds().Center().Y }
	case ext.Z >= ext.X && ext.Z >= ext.Y:
		axis = func(i int) float64 { return prims[i].Bounds().Center().Z }
	}
	sort.Slice(items, func(a, b int) bool { return axis(items[a]) < axis(items[b]) })

	mid := len(items) / 2
	node.left = buildBVH(prims, items[:mid])
	node.right = buildBVH(prims, items[mid:])
	return node
}

func (n *bvhNode) intersect(prims []Primitive, r Ray, tmin, tmax float64) (Hit, bool) {
	if n == nil || !n.box.Hit(r, tmin, tmax) {
		return Hit{}, false
	}
	if n.items != nil {
		var best Hit
		found := false
		for _, i := range n.items {
			if h, ok := prims[i].Intersect(r, tmin, tmax); ok {
				h.Index = i
				best, found, tmax = h, true, h.T
			}
		}
		return best, found
	}
	best, found := n.left.intersect(prims, r, tmin, tmax)
	if found {
		tmax = best.T
	}
	if h, ok := n.right.intersect(prims, r, tmin, tmax); ok {
		return h, true
	}
	return best, found
}
