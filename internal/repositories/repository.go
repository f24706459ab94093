package repositories

import (
	"swipestats/internal/database"
)

type Repository struct {
	User         UserRepository
	Profile      ProfileRepository
	DailyUsage   DailyUsageRepository
	Match        MatchRepository
	ProfileMeta  ProfileMetaRepository
	Cohort       CohortRepository
	IngestionRun IngestionRunRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:         NewUserRepository(),
		Profile:      NewProfileRepository(),
		DailyUsage:   NewDailyUsageRepository(),
		Match:        NewMatchRepository(),
		ProfileMeta:  NewProfileMetaRepository(db.Cache.Profiles), // meta reads go through the profile cache
		Cohort:       NewCohortRepository(),
		IngestionRun: NewIngestionRunRepository(),
	}
}
