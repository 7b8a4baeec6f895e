//go:build !race

package castlegate

func passwordHashCost() int {
	return bcryptCost
}
