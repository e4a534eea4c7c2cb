package repositories

// RepositoryProvider holds instances of all the repositories, wired once at
// startup and handed to the service layer.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	ReportingRepo   ReportingRepository
}
