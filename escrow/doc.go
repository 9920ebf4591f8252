/*
Package escrow implements bounty escrow of the custody core.

Bounty escrow holds funds the owner sets aside for paying bounty hunters.
Each payout is split between the hunter and the platform: the platform takes
FeeBPS basis points (2%) of every payment, rounded down, the hunter gets the
rest. Nothing is lost in the split, hunter part and fee always sum up to the
payment amount.

Escrow lifecycle is Uninitialized -> Active -> Closed. CloseBounty returns the
remainder to the owner and removes the record, after that the escrow behaves
as never initialized: Deposit, ProcessPayment and CloseBounty fail with
common.ErrAccountNotFound, while Initialize starts a new lifecycle at the
same derived address with a fresh record.

Escrow does not remember which submissions were paid. ProcessPayment checks
only the submission counters passed by the caller, see PaymentParams.

# Notifications

PaymentProcessed notification. It is produced on each payout.

	PaymentProcessed:
	  - name: bountyID
	    type: String
	  - name: submissionID
	    type: String
	  - name: hunterWallet
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: platformFee
	    type: Integer

BountyClosed notification. It is produced when escrow is closed.

	BountyClosed:
	  - name: bountyID
	    type: String
	  - name: remainingAmount
	    type: Integer
*/
package escrow

/*
Storage model.

# Summary
Key-value storage format:
 - e<util.Uint160> -> Escrow
   escrow record addressed by the derived escrow address, removed on close
*/
