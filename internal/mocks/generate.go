package mocks

//go:generate mockgen -destination=radio.go -package=mocks github.com/hxnx/radiowave/internal/radio Confirmer,Notifier,Player
//go:generate mockgen -destination=store.go -package=mocks github.com/hxnx/radiowave/internal/store Store
