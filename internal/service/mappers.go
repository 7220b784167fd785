package service

import (
	"aguaya/internal/dto"
	"aguaya/internal/model"
)

func toValeResponse(v *model.Vale) dto.ValeResponse {
	return dto.ValeResponse{
		ID:               v.ID.String(),
		ClienteID:        ptrString(v.ClienteID),
		Monto:            dto.NewMonto(v.Monto),
		MontoUsado:       dto.NewMonto(v.MontoUsado),
		MontoRestante:    dto.NewMonto(v.MontoRestante),
		Estado:           v.Estado,
		FechaVencimiento: v.FechaVencimiento,
		Descripcion:      v.Descripcion,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func toVoucherResponse(v *model.Voucher) dto.VoucherResponse {
	return dto.VoucherResponse{
		ID:               v.ID.String(),
		ClienteID:        v.ClienteID.String(),
		RepartidorID:     ptrString(v.RepartidorID),
		PedidoID:         v.PedidoID,
		PedidoInvitadoID: v.PedidoInvitadoID,
		ProductoID:       v.ProductoID,
		Cantidad:         v.Cantidad,
		PrecioUnitario:   dto.NewMonto(v.PrecioUnitario),
		Total:            dto.NewMonto(v.Total),
		Estado:           v.Estado,
		EntregadoAt:      v.EntregadoAt,
		PagadoAt:         v.PagadoAt,
		MetodoPago:       v.MetodoPago,
		ReferenciaPago:   v.ReferenciaPago,
		CreatedAt:        v.CreatedAt,
	}
}

func toPreferenciaResponse(p *model.PreferenciaCliente) dto.PreferenciaResponse {
	return dto.PreferenciaResponse{
		ID:                   p.ID.String(),
		ClienteID:            p.ClienteID.String(),
		Documento:            p.Documento,
		Modalidad:            p.Modalidad,
		TipoSuscripcion:      p.TipoSuscripcion,
		MontoSuscripcion:     dto.NewMontoPtr(p.MontoSuscripcion),
		CantidadSuscripcion:  p.CantidadSuscripcion,
		BonificacionCantidad: p.BonificacionCantidad,
		ValidoHasta:          p.ValidoHasta,
		Activo:               p.Activo,
		CreatedAt:            p.CreatedAt,
	}
}

func toPlanResponse(p *model.PlanSuscripcion) dto.PlanResponse {
	return dto.PlanResponse{
		ID:               p.ID.String(),
		Nombre:           p.Nombre,
		Tipo:             p.Tipo,
		TotalBotellas:    p.TotalBotellas,
		BotellasBono:     p.BotellasBono,
		PrecioMensual:    dto.NewMonto(p.PrecioMensual),
		PrecioPorBotella: dto.NewMonto(p.PrecioPorBotella),
		MaxEntregaDiaria: p.MaxEntregaDiaria,
		Activo:           p.Activo,
	}
}

func toSuscripcionResponse(s *model.Suscripcion) dto.SuscripcionResponse {
	return dto.SuscripcionResponse{
		ID:                 s.ID.String(),
		ClienteID:          s.ClienteID.String(),
		PlanID:             s.PlanID.String(),
		BotellasEntregadas: s.BotellasEntregadas,
		BotellasRestantes:  s.BotellasRestantes,
		FechaInicio:        s.FechaInicio,
		FechaFin:           s.FechaFin,
		Estado:             s.Estado,
	}
}

func toClienteResponse(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:           c.ID.String(),
		Documento:    c.Documento,
		Nombre:       c.Nombre,
		Telefono:     c.Telefono,
		Email:        c.Email,
		Direccion:    c.Direccion,
		Distrito:     c.Distrito,
		TotalPedidos: c.TotalPedidos,
		UltimoPedido: c.UltimoPedido,
		Activo:       c.Activo,
	}
}

func toDistritoResponse(d *model.Distrito) dto.DistritoResponse {
	return dto.DistritoResponse{
		ID:             d.ID.String(),
		Nombre:         d.Nombre,
		TarifaDelivery: dto.NewMonto(d.TarifaDelivery),
		Activo:         d.Activo,
	}
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      u.Rol,
		Activo:   u.Activo,
	}
}
