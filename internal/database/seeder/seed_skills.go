package seeder

import (
	"context"

	"talenthub/internal/database"
)

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

var defaultSkills = []struct {
	Name     string
	Category string
}{
	{"Go", "Programming Language"},
	{"Java", "Programming Language"},
	{"Python", "Programming Language"},
	{"JavaScript", "Programming Language"},
	{"TypeScript", "Programming Language"},
	{"SQL", "Programming Language"},
	{"React", "Frontend"},
	{"Vue.js", "Frontend"},
	{"Node.js", "Backend"},
	{"Spring Boot", "Backend"},
	{"PostgreSQL", "Database"},
	{"MySQL", "Database"},
	{"Redis", "Database"},
	{"Docker", "DevOps"},
	{"Kubernetes", "DevOps"},
	{"AWS", "Cloud"},
	{"GCP", "Cloud"},
	{"Microsoft Excel", "Office"},
	{"Accounting", "Finance"},
	{"Project Management", "Management"},
	{"Customer Service", "Operations"},
	{"Sales", "Business"},
	{"Digital Marketing", "Marketing"},
	{"English", "Language"},
	{"Japanese", "Language"},
}

func (SkillsSeeder) Run(ctx context.Context, db database.DB) (int64, error) {
	if err := requireColumns(ctx, db, "skills", "id", "name", "category", "created_at"); err != nil {
		return 0, err
	}

	var inserted int64
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, it := range defaultSkills {
			n, err := tx.Exec(
				ctx,
				`INSERT INTO skills (id, name, category) VALUES (gen_random_uuid(), $1, $2) ON CONFLICT ((lower(name))) DO NOTHING`,
				it.Name,
				it.Category,
			)
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	return inserted, err
}
