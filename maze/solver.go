package maze

// Solve returns the route from the start cell to the exit cell, both included.
// The open passages form a tree, so the breadth-first search finds the only
// simple route there is.
func Solve(m *Maze) []CellPosition {
	parent := map[CellPosition]CellPosition{m.start: m.start}
	queue := []CellPosition{m.start}

	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		if cell == m.exit {
			break
		}
		for _, next := range m.OpenNeighbors(cell) {
			if _, seen := parent[next]; !seen {
				parent[next] = cell
				queue = append(queue, next)
			}
		}
	}

	if _, ok := parent[m.exit]; !ok {
		return nil
	}

	var route []CellPosition
	for cell := m.exit; cell != m.start; cell = parent[cell] {
		route = append(route, cell)
	}
	route = append(route, m.start)

	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// RouteNodes expands a cell route onto the lattice, inserting the connector
// node between each pair of consecutive cells.
func RouteNodes(route []CellPosition) []Node {
	if len(route) == 0 {
		return nil
	}

	nodes := make([]Node, 0, 2*len(route)-1)
	prev := route[0].Node()
	nodes = append(nodes, prev)
	for _, cell := range route[1:] {
		next := cell.Node()
		nodes = append(nodes, Node{Row: (prev.Row + next.Row) / 2, Col: (prev.Col + next.Col) / 2}, next)
		prev = next
	}
	return nodes
}
