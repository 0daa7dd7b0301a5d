package graph

// FindClusters partitions nodes into connected components.
//
// Nodes are visited in input order and each unvisited node seeds a breadth
// first search, so cluster ids and member order are deterministic for a
// given input. Edges referencing unknown nodes are ignored, as are repeated
// node ids after the first.
func FindClusters(nodes []Node, edges []Edge) []Cluster {
	index := make(map[string]int, len(nodes))
	visited := make([]bool, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; dup {
			visited[i] = true
			continue
		}
		index[n.ID] = i
	}

	adj := make([][]int, len(nodes))
	for _, e := range edges {
		s, ok := index[e.Source]
		if !ok {
			continue
		}
		t, ok := index[e.Target]
		if !ok || s == t {
			continue
		}
		adj[s] = append(adj[s], t)
		adj[t] = append(adj[t], s)
	}

	clusters := []Cluster{}
	for i := range nodes {
		if visited[i] {
			continue
		}
		c := Cluster{ID: len(clusters)}
		visited[i] = true
		queue := []int{i}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			c.Members = append(c.Members, nodes[cur])
			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		clusters = append(clusters, c)
	}
	return clusters
}
