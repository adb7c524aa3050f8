package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerGameTeamRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/game-teams/{gameTeamID}", handler.GetGameTeam)
	mux.HandleFunc("PUT /v1/game-teams/{gameTeamID}/formation", handler.SetFormation)
	mux.HandleFunc("GET /v1/game-teams/{gameTeamID}/lineup", handler.GetGameLineup)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/roster", handler.AddToGameRoster)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/goals", handler.RecordGoal)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/field-entries", handler.BringPlayerOntoField)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/field-exits", handler.RemovePlayerFromField)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/substitutions", handler.SubstitutePlayer)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/position-changes", handler.ChangePosition)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/position-swaps", handler.SwapPositions)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/changes", handler.BatchChanges)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/periods/{period}/start", handler.StartPeriod)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/periods/{period}/end", handler.EndPeriod)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/periods/{period}/link-starters", handler.LinkStartersToPeriodStart)
	mux.HandleFunc("POST /v1/game-teams/{gameTeamID}/periods/second-half/ensure", handler.EnsureSecondHalfLineup)
	mux.HandleFunc("PUT /v1/game-teams/{gameTeamID}/periods/second-half/lineup", handler.SetSecondHalfLineup)
}

func registerEventRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games/{gameID}/events", handler.ListGameEvents)
	mux.HandleFunc("GET /v1/events/{eventID}/dependents", handler.FindDependentEvents)
	mux.HandleFunc("DELETE /v1/events/{eventID}", handler.DeleteEventWithCascade)
	mux.HandleFunc("PUT /v1/goals/{eventID}", handler.UpdateGoal)
	mux.HandleFunc("DELETE /v1/goals/{eventID}", handler.DeleteGoal)
	mux.HandleFunc("DELETE /v1/substitutions/{eventID}", handler.DeleteSubstitution)
	mux.HandleFunc("DELETE /v1/position-swaps/{eventID}", handler.DeletePositionSwap)
	mux.HandleFunc("DELETE /v1/starter-entries/{eventID}", handler.DeleteStarterEntry)
	mux.HandleFunc("GET /v1/conflicts/{conflictID}", handler.ListConflictEvents)
	mux.HandleFunc("POST /v1/conflicts/{conflictID}/resolution", handler.ResolveConflict)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/{teamID}/player-stats", handler.GetPlayerStats)
}
