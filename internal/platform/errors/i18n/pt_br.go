package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		CodeUnknown: "Algo deu errado. Tente novamente",

		// Provisioning
		CodeProvisionEmailRequired:          "O endereço de e-mail é obrigatório",
		CodeProvisionPasswordRequired:       "A senha é obrigatória",
		CodeProvisionNameRequired:           "O nome de exibição é obrigatório",
		CodeProvisionInvalidRole:            "Função de conta inválida",
		CodeProvisionRestaurantNameRequired: "O nome do restaurante é obrigatório para contas de restaurante",
		CodeProvisionStepFailed:             "A criação da conta falhou na etapa {{.Step}}: {{.Reason}}",
		CodeProvisionCreated:                "Conta criada com sucesso",

		// Ledger
		CodeLedgerFetchFailed: "Falha ao buscar transações",
		CodeLedgerInvalidPage: "Parâmetros de página inválidos",

		// Auth
		CodeAuthInvalidCredentials: "E-mail ou senha inválidos",
		CodeAuthUnauthorized:       "Autenticação necessária",
		CodeAuthForbidden:          "Você não tem permissão para executar esta ação",

		// Storage
		CodeNotFound:      "O registro solicitado não foi encontrado",
		CodeAlreadyExists: "Já existe uma conta com este e-mail",
	},
}
