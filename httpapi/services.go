package httpapi

import (
	"sidebet/domain/interfaces"
	"sidebet/domain/services"
)

// txServices bundles the domain services wired to one unit of work's
// transaction-scoped repositories and event buffer
type txServices struct {
	wallet     interfaces.WalletService
	wager      interfaces.WagerService
	settlement interfaces.SettlementService
	challenge  interfaces.GroupChallengeService
}

func servicesFor(uow interfaces.UnitOfWork) txServices {
	wallet := services.NewWalletService(uow.WalletRepository(), uow.LedgerRepository(), uow.EventBus())
	return txServices{
		wallet:     wallet,
		wager:      services.NewWagerService(wallet, uow.WalletRepository(), uow.WagerRepository(), uow.EscrowRepository(), uow.EventBus()),
		settlement: services.NewSettlementService(wallet, uow.WagerRepository(), uow.EscrowRepository(), uow.EventBus()),
		challenge:  services.NewGroupChallengeService(wallet, uow.WalletRepository(), uow.GroupChallengeRepository(), uow.EscrowRepository(), uow.EventBus()),
	}
}
