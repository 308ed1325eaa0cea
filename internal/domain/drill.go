package domain

// CountPair - строка ответа сервиса измерений: [label, count]
type CountPair struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// TimeOption - допустимое значение следующего временного уровня
type TimeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NodeID identifies a drill node within one tree generation.
type NodeID uint64

// DrillNode - узел дерева drill-down, как его видят потребители (копия)
type DrillNode struct {
	ID       NodeID        `json:"id"`
	Level    LocationLevel `json:"level"`
	Label    string        `json:"label"`
	Total    int64         `json:"total"`
	Query    QuerySpec     `json:"query"`
	Children []DrillNode   `json:"children"`
	Expanded bool          `json:"expanded"`
	Loading  bool          `json:"loading,omitempty"`
}

// Find walks the snapshot depth-first and returns the node with the given id.
func Find(nodes []DrillNode, id NodeID) (DrillNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := Find(n.Children, id); ok {
			return found, true
		}
	}
	return DrillNode{}, false
}
