package vec

import (
	"fmt"
	"sort"
)

// Vec3 представляет целочисленную координату вокселя (x, y, z).
// Пространство разреженное и неограниченное: допустимы любые значения.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// New создаёт координату из трёх компонент
func New(x, y, z int) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// String возвращает представление вида "x,y,z" (совпадает с ключом мира)
func (v Vec3) String() string {
	return fmt.Sprintf("%d,%d,%d", v.X, v.Y, v.Z)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// ManhattanTo возвращает манхэттенское расстояние до другой точки
func (v Vec3) ManhattanTo(other Vec3) int {
	d := v.Sub(other)
	return abs(d.X) + abs(d.Y) + abs(d.Z)
}

// Less задаёт детерминированный порядок (y, затем x, затем z)
func (v Vec3) Less(other Vec3) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	if v.X != other.X {
		return v.X < other.X
	}
	return v.Z < other.Z
}

// Sort упорядочивает срез координат на месте
func Sort(points []Vec3) {
	sort.Slice(points, func(i, j int) bool { return points[i].Less(points[j]) })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
